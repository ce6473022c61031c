package main

import "momentum/cmd/mo/root"

func main() {
	root.Execute()
}
