package main

import "github.com/haddadrachelle2-png/testdoc/cmd"

func main() {
	cmd.Execute()
}
