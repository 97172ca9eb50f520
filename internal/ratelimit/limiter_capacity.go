// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ratelimit

import (
	"fmt"
	"math"
	"time"
)

// Bucket capacities are chosen so that the bucket refills windowMultiple times
// per window, bounding the overshoot in any window to a few percent.
const windowMultiple = 50

// BandwidthWindow is the window over which stream bandwidth limits hold.
const BandwidthWindow = 8 * time.Hour

// ChooseLimiterCapacity picks a token bucket capacity that limits events to
// rateHz over any window of the given length.
func ChooseLimiterCapacity(
	rateHz float64,
	window time.Duration) (capacity int, err error) {
	if !(rateHz > 0 && rateHz < math.MaxFloat64) {
		err = fmt.Errorf("Illegal rate: %f", rateHz)
		return
	}

	if window <= 0 {
		err = fmt.Errorf("Illegal window: %v", window)
		return
	}

	capacityFloat := math.Floor(window.Seconds() * rateHz / windowMultiple)
	if !(capacityFloat >= 1 && capacityFloat <= math.MaxInt32) {
		err = fmt.Errorf(
			"Can't use a token bucket to limit to %f Hz over a window of %v (result is a capacity of %f)",
			rateHz,
			window,
			capacityFloat)
		return
	}

	capacity = int(capacityFloat)
	return
}

// NewBandwidthThrottle returns a throttle limiting reads to bytesPerSec, or nil
// when bytesPerSec is not positive, which disables limiting.
func NewBandwidthThrottle(bytesPerSec float64) (Throttle, error) {
	if !(bytesPerSec > 0) {
		return nil, nil
	}

	capacity, err := ChooseLimiterCapacity(bytesPerSec, BandwidthWindow)
	if err != nil {
		return nil, fmt.Errorf("choosing bandwidth token bucket capacity: %w", err)
	}

	return NewThrottle(bytesPerSec, capacity), nil
}
