package commands

import (
	"fmt"

	cipherkit "github.com/allisson/go-cipherkit"
)

// RunAlgorithms prints the algorithm catalog with availability and length
// information.
func RunAlgorithms() error {
	fmt.Printf("%-16s %6s %8s %10s %10s\n", "NAME", "CODE", "KEY LEN", "BLOCK LEN", "AVAILABLE")
	for _, algo := range cipherkit.Algorithms() {
		name, err := algo.Name()
		if err != nil {
			name = "-"
		}
		fmt.Printf(
			"%-16s %6d %8d %10d %10t\n",
			name, int(algo), algo.KeyLen(), algo.BlockLen(), algo.IsAvailable(),
		)
	}
	return nil
}

// RunModes prints the mode catalog.
func RunModes() error {
	fmt.Printf("%-10s %6s\n", "NAME", "CODE")
	for _, mode := range cipherkit.Modes() {
		fmt.Printf("%-10s %6d\n", mode, int(mode))
	}
	return nil
}
