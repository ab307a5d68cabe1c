// Package budget keeps a rendered prompt inside a model's context window.
//
// The Enforcer measures a rendered prompt in tokens and, when it is over the
// input budget, shortens it in one of two ways:
//
//   - With no trim arguments configured, the rendered text itself is cut to
//     the budget, keeping its start or its end.
//   - With trim arguments, those template arguments are shortened in the
//     configured order until the excess is covered, and the template is
//     rendered again.
//
// # Budget
//
// The input budget is the smaller of the host's context size and the
// configured Limit, minus ReserveOutput tokens kept free for the answer:
//
//	opts := budget.DefaultContextOptions() // ReserveOutput: 256
//	opts.TrimArgs = []string{"document"}
//	enf := budget.NewEnforcer(tok)
//	prompt, err := enf.Enforce(4096, opts, rendered, args, render)
//
// # Argument values
//
// Arguments are Values: a Scalar string, an Array of Values, or an Other
// value (numbers, booleans, null) that is never trimmed. Trimming never
// mutates its input; it returns new values plus the number of tokens removed.
//
// Arrays are trimmed according to ArrayPriority:
//
//   - PriorityFirst keeps leading elements; trailing elements go first.
//   - PriorityLast keeps trailing elements; leading elements go first.
//   - PriorityEqual cuts every element by its share of the array's tokens,
//     rounded per element, in a single pass.
//
// Elements trimmed down to the empty string are removed from their array.
//
// # Best effort
//
// When every trim argument has been exhausted and the prompt is still over
// budget, the Enforcer renders anyway and logs a warning. The second render
// is not measured again.
package budget
