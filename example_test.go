package taskmeter_test

import (
	"fmt"

	"github.com/taskmeter/taskmeter"
)

// Example tracks a two-phase backup where the first phase is itself a
// tracked sequence of files.
func Example() {
	stack := taskmeter.NewStack()
	job, err := stack.BeginFixed(2,
		taskmeter.WithTaskKey("backup", nil),
		taskmeter.WithCallback(func(r taskmeter.Report) {
			fmt.Printf("%.2f\n", r.Fraction)
		}, taskmeter.DepthAuto),
	)
	if err != nil {
		panic(err)
	}

	files, err := taskmeter.TrackSlice(stack, []string{"a.txt", "b.txt"})
	if err != nil {
		panic(err)
	}
	for range files.Values() {
		// copy one file
	}

	if err := job.AdvanceStep(); err != nil { // phase one accounted
		panic(err)
	}
	if err := job.AdvanceStep(); err != nil { // phase two done
		panic(err)
	}
	if err := job.End(); err != nil {
		panic(err)
	}

	// Output:
	// 0.25
	// 0.50
	// 0.50
	// 0.50
	// 1.00
	// 1.00
}
