// Command framesim runs a frame scheduler against a simulated renderer and
// reports how the frames went.
package main

import "github.com/sarchlab/framesched/framesim/cmd"

func main() {
	cmd.Execute()
}
