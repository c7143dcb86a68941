package main

import "github.com/Marczeeee/allianz-calendar-app/cmd"

func main() {
	cmd.Execute()
}
