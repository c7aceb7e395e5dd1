package main

import "fmt"

// printPackHelp prints usage for the fwpack command
func printPackHelp() {
	fmt.Println("Usage: fwpack [options] [project-path]")
	fmt.Println()
	fmt.Println("Package PlatformIO build output into a versioned artifact tree with a")
	fmt.Println("flash.json descriptor per environment, ready for a web flasher.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  -h, --help             Show this help message")
	fmt.Println("  -o, --output <dir>     Output root (default: the project directory)")
	fmt.Println("      --pio <path>       PlatformIO executable (default: pio from PATH)")
	fmt.Println("      --skip-build       Package existing build output without building")
	fmt.Println("      --sign-key <file>  Sign each SHA256SUMS with this PGP private key")
	fmt.Println("      --sync             Upload the packaged project to the website host")
	fmt.Println("      --sync-dry-run     Show what a sync would transfer without uploading")
	fmt.Println("      --server <dest>    ssh destination for sync, e.g. deploy@example.com")
	fmt.Println("      --target <dir>     Website root on the server")
	fmt.Println("      --key <file>       ssh identity file for sync")
	fmt.Println("  -v, --verbose          Enable debug logging")
	fmt.Println()
	fmt.Println("The project path must contain platformio.ini. When omitted, fwpack")
	fmt.Println("asks for it on stdin.")
	fmt.Println()
	fmt.Println("Sync defaults (server, target, key) and the output root can also be")
	fmt.Println("set in .fwpack.yaml in the project root or your home directory;")
	fmt.Println("command-line options win.")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  fwpack ~/Arduino/myproject")
	fmt.Println("  fwpack --skip-build -o /srv/flasher ~/Arduino/myproject")
	fmt.Println("  fwpack --sync --server deploy@example.com --target /var/www/flasher .")
	fmt.Println()
	fmt.Println("Exit codes:")
	fmt.Println("  0  All environments packaged")
	fmt.Println("  1  A fatal error occurred or at least one environment failed")
}
