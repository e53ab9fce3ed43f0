/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package utils

import (
	"fmt"
	"time"
)

type CheckedFunc func() error

// RetryError retries f every interval until it stops failing, for at
// most maxRetries retries beyond the first attempt. If the retries are
// exhausted and f is still failing, its last error is returned.
//
// The interval won't be affected by how long f takes. For example, if
// interval is 3s and f takes 1s, the next f will be called 2s later.
// However, if f takes longer than interval, it will be delayed.
func RetryError(interval time.Duration, maxRetries int, f CheckedFunc) error {
	if maxRetries <= 0 {
		return fmt.Errorf("maxRetries (%d) should be > 0", maxRetries)
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for i := 0; ; i++ {
		err := f()
		if err == nil {
			return nil
		}
		if i == maxRetries {
			return err
		}
		<-tick.C
	}
}
