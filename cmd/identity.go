package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tonhe/mikrochart/internal/config"
	"github.com/tonhe/mikrochart/internal/identity"
	"github.com/tonhe/mikrochart/internal/source"
	"golang.org/x/term"
)

const identityUsage = "Usage: mikrochart identity <list|add|remove|test>"

func identityCmd(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, identityUsage)
		os.Exit(1)
	}

	switch args[0] {
	case "list":
		identityList()
	case "add":
		identityAdd()
	case "remove":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "Usage: mikrochart identity remove NAME")
			os.Exit(1)
		}
		identityRemove(args[1])
	case "test":
		if len(args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: mikrochart identity test NAME HOST")
			os.Exit(1)
		}
		identityTest(args[1], args[2])
	default:
		fmt.Fprintf(os.Stderr, "Unknown identity command: %s\n", args[0])
		fmt.Fprintln(os.Stderr, identityUsage)
		os.Exit(1)
	}
}

// openStore opens the identity store, prompting for the master password if needed.
// Tries empty password first to support no-password vaults.
func openStore() *identity.FileStore {
	storePath, err := config.GetIdentityStorePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.EnsureDirs(); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating config directories: %v\n", err)
		os.Exit(1)
	}

	store, storeErr := identity.NewFileStore(storePath, []byte(""))
	if storeErr == nil {
		return store
	}

	password := getMasterPassword()
	store, storeErr = identity.NewFileStore(storePath, password)
	if storeErr != nil {
		fmt.Fprintf(os.Stderr, "Error opening identity store: %v\n", storeErr)
		os.Exit(1)
	}
	return store
}

// getMasterPassword reads the master password from the environment or prompts.
func getMasterPassword() []byte {
	if key := os.Getenv(config.EnvMasterKey); key != "" {
		return []byte(key)
	}

	fmt.Fprint(os.Stderr, "Master password: ")
	return readSecret()
}

func readSecret() []byte {
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr) // newline after password input
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		os.Exit(1)
	}
	return secret
}

func identityList() {
	store := openStore()
	summaries, err := store.List()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing identities: %v\n", err)
		os.Exit(1)
	}

	if len(summaries) == 0 {
		fmt.Println("No identities configured.")
		return
	}

	for _, s := range summaries {
		line := fmt.Sprintf("%-20s", s.Name)
		if s.SNMPVersion != "" {
			line += fmt.Sprintf("  snmp=v%s", s.SNMPVersion)
		}
		if s.SNMPUser != "" {
			line += fmt.Sprintf("  snmp-user=%s", s.SNMPUser)
		}
		if s.APIUser != "" {
			line += fmt.Sprintf("  api-user=%s", s.APIUser)
		}
		fmt.Println(line)
	}
}

// prompt prints label and returns the trimmed line the user typed.
func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func identityAdd() {
	reader := bufio.NewReader(os.Stdin)

	id := identity.Identity{Name: prompt(reader, "Identity name: ")}
	if id.Name == "" {
		fmt.Fprintln(os.Stderr, "Error: name is required")
		os.Exit(1)
	}

	version := prompt(reader, "SNMP version (1, 2c, 3, blank to skip): ")
	switch version {
	case "":
	case "1", "2c":
		id.SNMP.Version = version
		id.SNMP.Community = prompt(reader, "Community string: ")
		if id.SNMP.Community == "" {
			fmt.Fprintln(os.Stderr, "Error: community string is required for v1/v2c")
			os.Exit(1)
		}
	case "3":
		id.SNMP.Version = version
		promptSNMPv3(reader, &id.SNMP)
	default:
		fmt.Fprintln(os.Stderr, "Error: version must be 1, 2c, or 3")
		os.Exit(1)
	}

	if user := prompt(reader, "REST API username (blank to skip): "); user != "" {
		id.API.Username = user
		fmt.Fprint(os.Stderr, "REST API password: ")
		id.API.Password = string(readSecret())
		insecure := prompt(reader, "Skip TLS verification? (y/N): ")
		id.API.Insecure = strings.EqualFold(insecure, "y") || strings.EqualFold(insecure, "yes")
	}

	if err := id.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store := openStore()
	if err := store.Add(id); err != nil {
		fmt.Fprintf(os.Stderr, "Error adding identity: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Identity %q added.\n", id.Name)
}

func promptSNMPv3(reader *bufio.Reader, c *identity.SNMPCredentials) {
	c.Username = prompt(reader, "Username: ")
	if c.Username == "" {
		fmt.Fprintln(os.Stderr, "Error: username is required for v3")
		os.Exit(1)
	}

	authProto := prompt(reader, "Auth protocol (none, MD5, SHA, SHA256, SHA512): ")
	if authProto == "" || strings.EqualFold(authProto, "none") {
		return
	}
	c.AuthProto = strings.ToUpper(authProto)
	fmt.Fprint(os.Stderr, "Auth password: ")
	c.AuthPass = string(readSecret())

	privProto := prompt(reader, "Privacy protocol (none, DES, AES128, AES192, AES256): ")
	if privProto == "" || strings.EqualFold(privProto, "none") {
		return
	}
	c.PrivProto = strings.ToUpper(privProto)
	fmt.Fprint(os.Stderr, "Privacy password: ")
	c.PrivPass = string(readSecret())
}

func identityRemove(name string) {
	store := openStore()
	if err := store.Remove(name); err != nil {
		fmt.Fprintf(os.Stderr, "Error removing identity: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Identity %q removed.\n", name)
}

// identityTest reads sysDescr over SNMP and system resources over REST,
// whichever the identity has credentials for.
func identityTest(name, host string) {
	store := openStore()
	id, err := store.Get(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	ok := true
	if id.HasSNMP() {
		fmt.Fprintf(os.Stderr, "Testing SNMP connectivity to %s using identity %q...\n", host, name)
		src, err := source.NewSNMPSource(host, 0, &id.SNMP, "", 10*time.Second)
		if err == nil {
			var d *source.Discovery
			d, err = src.Discover(ctx)
			src.Close()
			if err == nil {
				fmt.Printf("sysDescr: %s\n", d.System.Description)
			}
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "SNMP test failed: %v\n", err)
			ok = false
		}
	}
	if id.HasAPI() {
		fmt.Fprintf(os.Stderr, "Testing REST API on %s using identity %q...\n", host, name)
		src := source.NewRESTSource("https://"+host, id.API, 10*time.Second)
		r, err := src.Fetch(ctx)
		src.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "REST test failed: %v\n", err)
			ok = false
		} else {
			fmt.Printf("cpu-load: %.0f%%\n", r.CPULoadPercent)
		}
	}

	if !ok {
		os.Exit(1)
	}
	fmt.Println("Connection test successful.")
}
