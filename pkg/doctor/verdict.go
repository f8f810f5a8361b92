// pkg/doctor/verdict.go

package doctor

import "github.com/tes3mp-community/tes3mp-easy/pkg/tailscale"

// Verdict folds the battery into one plain-language recommendation.
func Verdict(results []Result, target string) string {
	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}

	icmpOK := byName[CheckReachability].Status == StatusPass
	tunnelOK := byName[CheckTunnelPing].Status == StatusPass
	isTailnet := tailscale.IsTailnetAddr(target)

	switch {
	case tunnelOK:
		return "All clear. You can connect. If the game still fails, check the server password and that the host's port is open."
	case icmpOK && isTailnet:
		return "Caution: the machine answers ping but the tunnel is not verified. Check that their Tailscale is online."
	case icmpOK && !isTailnet:
		return "LAN connection looks good for local play."
	default:
		return "The target cannot be reached at all. Is their computer on? Is their Tailscale connected? Are you both online?"
	}
}
