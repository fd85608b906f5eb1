// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"flag"
	stdio "io"
	"net"
	"sync"
	"time"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/mertemba/spheresim/config"
	"github.com/mertemba/spheresim/frame"
	"github.com/mertemba/spheresim/queue"
	"github.com/mertemba/spheresim/transport"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.PfRed("ERROR: %v\n", err)
		}
	}()

	// message
	io.PfWhite("\nspheresim -- rigid sphere dynamics server\n\n")
	io.Pf("Copyright 2016 The Gofem Authors. All rights reserved.\n")
	io.Pf("Use of this source code is governed by a BSD-style\n")
	io.Pf("license that can be found in the LICENSE file.\n\n")

	// scene filename and listen address
	flag.Parse()
	var scenePath string
	if len(flag.Args()) > 0 {
		scenePath = flag.Arg(0)
	} else {
		chk.Panic("Please, provide a scene filename. Ex.: demo.json")
	}
	listenAddr := ":5014"
	if len(flag.Args()) > 1 {
		listenAddr = flag.Arg(1)
	}

	// load scene
	b := io.ReadFile(scenePath)
	eng := config.Load(b)

	// start worker goroutine
	q := queue.New()
	frames := frame.New(frame.DefaultCapacity)
	q.OnFrame = func(stepCount uint64) {
		frames.Push(transport.EncodeFrameStream(eng.Spheres))
	}
	go q.Run(eng)

	// listen for client connections
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		chk.Panic("cannot listen on %s: %v", listenAddr, err)
	}
	io.PfGreen("> listening on %s\n", listenAddr)

	sess := &transport.Session{Engine: eng, Queue: q, Frames: frames}
	for {
		conn, err := ln.Accept()
		if err != nil {
			io.Pfred("accept error: %v\n", err)
			continue
		}
		go serveConn(conn, sess)
	}
}

// serveConn handles one client connection: requests are read, dispatched
// and replied to on this goroutine, while a second goroutine drains the
// frame ring into unsolicited frame-stream messages. Both share the
// connection's writer under a mutex.
func serveConn(conn net.Conn, sess *transport.Session) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	var wmu sync.Mutex

	done := make(chan struct{})
	defer close(done)
	go streamFrames(sess, w, &wmu, done)

	for {
		payload, err := transport.ReadFrame(r)
		if err != nil {
			if _, isNet := err.(net.Error); isNet || err == stdio.EOF {
				return
			}
			payload = nil // malformed frame: acknowledged below with an empty reply
		}
		group, action, body, ok := splitRequest(payload)
		var reply []byte
		if ok {
			reply = transport.Dispatch(sess, group, action, transport.NewDecoder(body))
		}
		wmu.Lock()
		werr := transport.WriteFrame(w, reply)
		wmu.Unlock()
		if werr != nil {
			return
		}
	}
}

// splitRequest parses a request payload: length-prefixed group and
// action names followed by the action body. A malformed payload yields
// ok=false and the caller acknowledges with an empty reply.
func splitRequest(payload []byte) (group, action string, body []byte, ok bool) {
	if len(payload) < 2 {
		return
	}
	groupLen := int(payload[0])
	if len(payload) < 1+groupLen+1 {
		return
	}
	group = string(payload[1 : 1+groupLen])
	rest := payload[1+groupLen:]
	actionLen := int(rest[0])
	if len(rest) < 1+actionLen {
		return
	}
	action = string(rest[1 : 1+actionLen])
	body = rest[1+actionLen:]
	ok = true
	return
}

// streamFrames pops pending frames from the ring and writes them to the
// client until the connection goes away.
func streamFrames(sess *transport.Session, w *bufio.Writer, wmu *sync.Mutex, done chan struct{}) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			for {
				f, ok := sess.Frames.Pop()
				if !ok {
					break
				}
				wmu.Lock()
				err := transport.WriteFrame(w, f)
				wmu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}
}
