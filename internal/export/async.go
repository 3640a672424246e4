/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import "context"

// Outcome is the result of an export started with Start.
type Outcome struct {
	Result Result
	Err    error
}

// Start runs an export on its own goroutine. The returned channel delivers exactly one Outcome and
// is then closed. Cancel ctx to abandon the export before the store is read.
func (e *Exporter) Start(ctx context.Context, path string, kind Kind) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		defer close(ch)
		if err := ctx.Err(); err != nil {
			ch <- Outcome{Err: err}
			return
		}
		res, err := e.Run(ctx, path, kind)
		ch <- Outcome{Result: res, Err: err}
	}()
	return ch
}
