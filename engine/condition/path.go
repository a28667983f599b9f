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

// Package condition implements the dotted-path field reader and the fixed
// comparison operators a step condition may use — deliberately not a
// general expression language; complexity stays well below a CEL-style
// evaluator.
package condition

import "strings"

// undefined is returned by lookups that don't resolve; it is distinct from
// a present nil so exists/notExists can tell the two apart.
type undefinedT struct{}

var undefined = undefinedT{}

func isUndefined(v any) bool {
	_, ok := v.(undefinedT)
	return ok
}

// Root is the read-only view the evaluator and resolver navigate: input.*,
// step.<id>.*, and variables.*.
type Root struct {
	Input     map[string]any
	Steps     map[string]map[string]any
	Variables map[string]any
}

// Lookup resolves a dotted field path. Paths must start with "input.",
// "step.<id>." or "variables."; any other prefix, or a missing segment
// anywhere along the path, resolves to undefined.
func Lookup(root Root, path string) any {
	parts := strings.Split(path, ".")
	if len(parts) < 2 {
		return undefined
	}

	switch parts[0] {
	case "input":
		return navigate(root.Input, parts[1:])
	case "variables":
		return navigate(root.Variables, parts[1:])
	case "step":
		if len(parts) < 3 {
			return undefined
		}
		stepOutput, ok := root.Steps[parts[1]]
		if !ok {
			return undefined
		}
		return navigate(stepOutput, parts[2:])
	default:
		return undefined
	}
}

func navigate(m map[string]any, segments []string) any {
	var cur any = m
	for _, seg := range segments {
		asMap, ok := cur.(map[string]any)
		if !ok {
			return undefined
		}
		v, ok := asMap[seg]
		if !ok {
			return undefined
		}
		cur = v
	}
	return cur
}
