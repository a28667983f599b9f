// Copyright 2025 AxonFlow
// SPDX-License-Identifier: BUSL-1.1
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package clock provides an injectable time source so the retry controller
// and the workflow/step timeout enforcers never read wall time directly.
package clock

import "time"

// Clock is the time source the engine depends on.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// System is the default Clock, backed by the real wall clock.
type System struct{}

// New returns the system clock.
func New() Clock { return System{} }

func (System) Now() time.Time { return time.Now() }

func (System) Sleep(d time.Duration) { time.Sleep(d) }
