// cmd/host/host.go

// Package host implements the server menu: install, configure, start,
// connection info, and the systemd service.
package host

import (
	"fmt"

	"github.com/tes3mp-community/tes3mp-easy/pkg/config"
	"github.com/tes3mp-community/tes3mp-easy/pkg/datafiles"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_cli"
	"github.com/tes3mp-community/tes3mp-easy/pkg/easy_io"
	"github.com/tes3mp-community/tes3mp-easy/pkg/interaction"
	"github.com/tes3mp-community/tes3mp-easy/pkg/server"
	"github.com/tes3mp-community/tes3mp-easy/pkg/settings"
	"github.com/tes3mp-community/tes3mp-easy/pkg/tailscale"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var HostCmd = &cobra.Command{
	Use:   "host",
	Short: "Install and run a dedicated TES3MP server",
	Long: `Opens the server menu: installs the pinned server release on first
run, then lets you start it, configure name and password, set up the ESM
files it needs for checksums, install it as a systemd service, and see the
addresses players should join.`,
	RunE: easy_cli.Wrap(func(rc *easy_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return Run(rc)
	}),
}

// Run drives the server menu loop.
func Run(rc *easy_io.RuntimeContext) error {
	s := settings.Load()

	root := server.Root(s)
	if root == "" {
		if !interaction.PromptYesNo("Install server to "+s.ServerDir+"?", true) {
			return nil
		}
		var err error
		root, err = server.Install(rc, s)
		if err != nil {
			return err
		}
	}

	options := []string{
		"Start Server",
		"Show Connection Info",
		"Configure (Name/Password)",
		"Setup ESM Files",
		"Invite Friends (Tailscale)",
		"Install Systemd Service",
		"Back",
	}

	for {
		fmt.Println()
		if server.ServiceActive(rc) {
			fmt.Println("Systemd service " + server.ServiceName + " is active.")
		}
		switch interaction.PromptSelect("Server Menu", options) {
		case "Start Server":
			if err := startServer(rc, s, root); err != nil {
				return err
			}
		case "Show Connection Info":
			printConnectionInfo(rc, s)
			interaction.PressEnterToContinue()
		case "Configure (Name/Password)":
			if err := configure(rc, root); err != nil {
				return err
			}
			interaction.PressEnterToContinue()
		case "Setup ESM Files":
			if err := setupESMFiles(rc, s); err != nil {
				return err
			}
			interaction.PressEnterToContinue()
		case "Invite Friends (Tailscale)":
			if err := inviteFriends(rc, s); err != nil {
				fmt.Println(err.Error())
			}
			interaction.PressEnterToContinue()
		case "Install Systemd Service":
			if err := server.InstallService(rc, root); err != nil {
				return err
			}
			interaction.PressEnterToContinue()
		default:
			return nil
		}
	}
}

func startServer(rc *easy_io.RuntimeContext, s *settings.Settings, root string) error {
	logger := otelzap.Ctx(rc.Ctx)

	// Bring the tunnel up first so the connection info is complete.
	if tailscale.Installed() && !tailscale.Running(rc) {
		if interaction.PromptYesNo("Tailscale is stopped. Start it so friends can connect?", true) {
			if err := tailscale.Up(rc); err != nil {
				logger.Warn("Could not start tailscale, hosting LAN-only", zap.Error(err))
			}
		}
	}

	printConnectionInfo(rc, s)
	fmt.Println("\nStarting server. Press Ctrl+C to stop.")
	return server.Start(rc, root)
}

func printConnectionInfo(rc *easy_io.RuntimeContext, s *settings.Settings) {
	info := server.GatherConnectionInfo(rc, s)

	fmt.Println("How to Connect")
	if info.TailscaleIP != "" {
		fmt.Printf("  Tailscale: %s:%d\n", info.TailscaleIP, info.Port)
	} else {
		fmt.Println("  Tailscale: not running")
	}
	if info.PublicIP != "" {
		fmt.Printf("  Public:    %s:%d (for VPS hosting)\n", info.PublicIP, info.Port)
	}
	if addr := info.Address(); addr != "" {
		fmt.Println("\nShare this with your friends: " + addr)
		fmt.Println("They need TES3MP, the same Morrowind files, and (for the tailscale address) your tailnet.")
	}
}

// inviteFriends prints the ways to get other players onto the tailnet,
// along with this node's address and the commands they have to run.
func inviteFriends(rc *easy_io.RuntimeContext, s *settings.Settings) error {
	if !tailscale.Running(rc) {
		if !interaction.PromptYesNo("Tailscale is not running. Start it now?", true) {
			return nil
		}
		if err := tailscale.Up(rc); err != nil {
			return err
		}
	}

	ip, err := tailscale.IPv4(rc)
	if err != nil {
		return err
	}

	machine := "your-server"
	tailnetName := ""
	if st, err := tailscale.GetStatus(rc); err == nil {
		if st.Self.HostName != "" {
			machine = st.Self.HostName
		}
		tailnetName = st.MagicDNSSuffix
	}

	fmt.Println("\nInvite Friends via Tailscale")
	fmt.Printf("  Server IP:   %s\n", ip)
	fmt.Printf("  Server name: %s\n", machine)
	if tailnetName != "" {
		fmt.Printf("  Tailnet:     %s\n", tailnetName)
	}

	fmt.Println(`
Option 1: Invite via the admin console (recommended)
  1. Go to https://login.tailscale.com/admin/users
  2. Click "Invite users" and enter your friend's email
  3. They get an email with instructions to join your tailnet

Option 2: Have friends run these commands
  curl -fsSL https://tailscale.com/install.sh | sh
  sudo tailscale up`)
	fmt.Printf("\nOnce they are on the tailnet, they connect to %s:%d\n", ip, s.ServerPort)
	return nil
}

func configure(rc *easy_io.RuntimeContext, root string) error {
	hostname := interaction.PromptInput("Server name", server.CurrentHostname(root))
	password, err := interaction.PromptSecret("Server password (leave empty for none)")
	if err != nil {
		return err
	}
	return server.Configure(rc, root, hostname, password)
}

// setupESMFiles stores the folder holding the master files the server
// needs for checksums. Full game data is not required on a host.
func setupESMFiles(rc *easy_io.RuntimeContext, s *settings.Settings) error {
	fmt.Println("The server only needs the .esm files to enforce checksums:")
	fmt.Println("  Morrowind.esm (Tribunal.esm and Bloodmoon.esm if you have them)")

	if rec, err := config.Load(rc); err == nil {
		fmt.Println("Current path: " + rec.DataFilesPath)
		if !interaction.PromptYesNo("Change path?", false) {
			return nil
		}
	}

	for {
		path := interaction.PromptRequired("Enter path containing ESM files")
		if path == "" {
			return nil
		}
		err := datafiles.ValidateAndRemember(rc, path, s.MarkerFiles)
		if err == nil {
			fmt.Println("ESM path saved.")
			return nil
		}
		if !datafiles.IsRejected(err) {
			return err
		}
		fmt.Println(err.Error())
		if !interaction.PromptYesNo("Try again?", true) {
			return nil
		}
	}
}
