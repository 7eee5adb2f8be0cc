// Package pipeline provides a framework for executing investigation steps
// in sequence.
//
// An investigation processes one subject through multiple stages: the
// username presence sweep, breach exposure check, dark web sweep, and any
// phone or domain lookups the caller attached. Each stage is implemented
// as a Step that receives the accumulated report and fills in its section.
//
// Design decision: We use a pipeline pattern instead of direct function
// calls because:
// 1. It allows easy addition/removal of steps without modifying core logic
// 2. It provides consistent error handling and logging across steps
// 3. It supports cancellation via context for long-running investigations
//
// The pipeline supports both individual investigations and batch
// processing of several subjects with concurrency control using errgroup.
package pipeline
