// Copyright © 2024 The ELPS authors

package main

import "github.com/luthersystems/jsem/cmd"

func main() {
	cmd.Execute()
}
