package main

import "github.com/jsphweid/saychord/cmd"

func main() {
	cmd.Execute()
}
