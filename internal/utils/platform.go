package utils

// BrowserCommand returns the command that opens url in the default browser
// on goos. ok is false for platforms without a known opener.
func BrowserCommand(goos, url string) (name string, args []string, ok bool) {
	switch goos {
	case "darwin":
		return "open", []string{url}, true
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, true
	case "linux", "freebsd", "openbsd", "netbsd", "dragonfly":
		return "xdg-open", []string{url}, true
	default:
		return "", nil, false
	}
}
