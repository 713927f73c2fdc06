// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock instead of calling time.Now or
// time.Sleep directly. In production, Real() provides the standard
// library behavior. In tests, Fake() provides a clock whose Sleep
// returns immediately, advancing fake time and recording the requested
// duration, so handlers that pause between device commands run
// instantly and their pauses can be asserted:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	service := automation.New(automation.Options{Clock: c, ...})
//	service.ForceRestartApp(ctx, params)
//	// c.Sleeps() == []time.Duration{time.Second}
package clock
