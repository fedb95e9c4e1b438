package main

import "github.com/mohammadsarfarazafzal/face-recognition-attendance-manager/cmd"

func main() {
	cmd.Execute()
}
