package main

import (
	"github.com/aixblock/rewards-engine/cmd"
)

func main() {
	cmd.Execute()
}
