package main

import "github.com/Shaik-Faizan-Ahmed/CollegeBusTracker-sub001/cmd"

func main() {
	cmd.Execute()
}
