package main

import "github.com/ValentinKolb/aKV/cmd"

func main() {
	cmd.Execute()
}
