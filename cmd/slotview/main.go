// Command slotview renders and stores smart contract storage layouts.
package main

import "github.com/mesh-intelligence/slotview/internal/cli"

func main() {
	cli.Execute()
}
