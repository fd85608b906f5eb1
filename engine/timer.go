// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"sync/atomic"
	"time"
)

// LastStepCalculationTime returns the wall-clock duration of the most
// recent DoStep call.
func (o *Engine) LastStepCalculationTime() time.Duration {
	return time.Duration(atomic.LoadInt64(&o.lastStepNanos))
}
