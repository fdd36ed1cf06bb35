package common

import (
	"fmt"
	"strings"

	"bdb-wallet-go/internal/models"
)

// DefaultWidth is the console report width.
const DefaultWidth = 80

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// PrintRecord prints one transaction record as a box list item.
func PrintRecord(record models.TransactionRecord, isLast bool) {
	fmt.Printf("%s %s  %s → %s  %10s\n",
		BoxPrefix(isLast),
		record.CreatedAt.Format("2006-01-02 15:04:05"),
		models.TruncateAddress(record.From),
		models.TruncateAddress(record.To),
		record.Amount)
}

// PrintNotifications prints the queued notifications in display order.
func PrintNotifications(notifications []models.Notification) {
	for i, n := range notifications {
		isLast := i == len(notifications)-1
		fmt.Printf("%s [%s] %s: %s\n", BoxPrefix(isLast), strings.ToUpper(string(n.Kind)), n.Title, n.Message)
	}
}
