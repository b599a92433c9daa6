package main

import "github.com/aliou/sesame/cmd"

func main() {
	cmd.Execute()
}
