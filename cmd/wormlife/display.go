package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// ── Startup display helpers ────────────────────────────────────────

func printBanner() {
	frame := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Println()
	fmt.Println(frame("  ┌───────────────────────────────────────────┐"))
	fmt.Println(frame("  │") + "              wormlife  v0.1.0             " + frame("│"))
	fmt.Println(frame("  │") + "        lives, deaths and generations      " + frame("│"))
	fmt.Println(frame("  └───────────────────────────────────────────┘"))
	fmt.Println()
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	color.Yellow("  ── %s %s", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s %s %s\n", label, color.HiBlackString(strings.Repeat("·", dotsLen)), color.GreenString(numStr))
}

func printOK(msg string) {
	fmt.Printf("  %s %s\n", color.GreenString("✓"), msg)
}

func printReady(msg string) {
	fmt.Printf("  %s %s\n", color.GreenString("▶"), msg)
}
