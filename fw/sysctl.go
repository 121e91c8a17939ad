package fw

import (
	"fmt"
	"os"
)

var ipForwardPath = "/proc/sys/net/ipv4/ip_forward"

// Lets the kernel route IPv4 packets between links.
func EnableForwarding() error {
	if err := os.WriteFile(ipForwardPath, []byte("1\n"), 0644); err != nil {
		return fmt.Errorf("fw: could not enable ip forwarding: %w", err)
	}
	return nil
}
