package app

import (
	"fmt"

	"github.com/phillarmonic/figlet/figletlib"
)

// Domain: Version Display
// This file contains logic for displaying version information

// ShowVersion displays version information with ASCII art
func ShowVersion(version, commit, date string) error {
	loader := figletlib.NewEmbededLoader()
	font, err := loader.GetFontByName("standard")
	if err != nil {
		return err
	}

	startColor, _ := figletlib.ParseColor("#FF8C00")
	endColor, _ := figletlib.ParseColor("#FFD700")
	gradientConfig := figletlib.ColorConfig{
		Mode:       figletlib.ColorModeGradient,
		StartColor: startColor,
		EndColor:   endColor,
	}

	fmt.Println("")
	figletlib.PrintColoredMsg("aish", font, 80, font.Settings(), "left", gradientConfig)

	fmt.Println("aish - an LLM-assisted interactive shell")
	fmt.Println()
	fmt.Printf("Version %s\n", version)
	if commit != "unknown" {
		fmt.Printf("commit: %s\n", commit)
	}
	if date != "unknown" {
		fmt.Printf("built: %s\n", date)
	}
	return nil
}
