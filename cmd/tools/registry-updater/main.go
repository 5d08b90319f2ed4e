// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"push-lifecycle/pkg/registry"
)

const defaultRegistryPath = "configs/channels.json"

var registryPath string

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{initCmd, addCmd, updateCmd, validateCmd} {
		fs.StringVar(&registryPath, "path", defaultRegistryPath, "Path to registry file")
	}

	// Init command flags
	defaultID := initCmd.String("defaultChannel", "default_channel_id", "Ordinary channel ID")
	callID := initCmd.String("callChannel", "call_channel_id", "Call channel ID")
	force := initCmd.Bool("force", false, "Overwrite an existing registry")

	// Add command flags
	idAdd := addCmd.String("id", "", "Channel ID (e.g., promo_channel_id)")
	name := addCmd.String("name", "", "User visible channel name")
	description := addCmd.String("description", "", "Description")
	importance := addCmd.String("importance", registry.ImportanceDefault, "Importance (default, high, max)")
	lightColor := addCmd.String("lightColor", "", "LED color; enables lights when set")
	vibration := addCmd.String("vibration", "", "Vibration pattern in ms, comma separated (e.g., 0,1000,500,1000)")
	category := addCmd.String("category", "", "Category (e.g., call)")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Channel ID to update")
	field := updateCmd.String("field", "", "Field to update (name, importance, etc.)")
	value := updateCmd.String("value", "", "New value for the field")

	// Validate command flags
	required := validateCmd.String("require", "default_channel_id,call_channel_id", "Comma separated channel IDs that must be declared")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		if err := initRegistry(*defaultID, *callID, *force); err != nil {
			fmt.Printf("Error creating registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created registry at %s\n", registryPath)

	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *name == "" {
			fmt.Println("Error: id and name are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		pattern, err := parsePattern(*vibration)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		channel := registry.Channel{
			ID:               *idAdd,
			Name:             *name,
			Description:      *description,
			Importance:       *importance,
			Lights:           *lightColor != "",
			LightColor:       *lightColor,
			Vibration:        len(pattern) > 0,
			VibrationPattern: pattern,
			Category:         *category,
		}
		if err := addChannel(channel); err != nil {
			fmt.Printf("Error adding channel: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added channel: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" {
			fmt.Println("Error: id and field are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateChannel(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating channel: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated channel %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(splitList(*required)); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func initRegistry(defaultID, callID string, force bool) error {
	if _, err := os.Stat(registryPath); err == nil && !force {
		return fmt.Errorf("%s already exists, use -force to overwrite", registryPath)
	}
	reg := registry.Default(defaultID, callID)
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.SaveRegistry(reg, registryPath)
}

func addChannel(channel registry.Channel) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		if os.IsNotExist(err) {
			reg = &registry.ChannelRegistry{Version: "1.0.0", Channels: []registry.Channel{}}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	if _, exists := reg.Find(channel.ID); exists {
		return fmt.Errorf("channel with ID %s already exists", channel.ID)
	}

	reg.Channels = append(reg.Channels, channel)
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.SaveRegistry(reg, registryPath)
}

func updateChannel(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	found := false
	for i := range reg.Channels {
		if reg.Channels[i].ID != id {
			continue
		}
		found = true
		ch := &reg.Channels[i]
		switch field {
		case "name":
			ch.Name = value
		case "description":
			ch.Description = value
		case "importance":
			ch.Importance = value
		case "category":
			ch.Category = value
		case "lightColor":
			ch.LightColor = value
			ch.Lights = value != ""
		case "lights":
			lights, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid lights value: %w", err)
			}
			ch.Lights = lights
		case "vibration":
			pattern, err := parsePattern(value)
			if err != nil {
				return err
			}
			ch.VibrationPattern = pattern
			ch.Vibration = len(pattern) > 0
		default:
			return fmt.Errorf("unknown field: %s", field)
		}
		break
	}

	if !found {
		return fmt.Errorf("channel with ID %s not found", id)
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.SaveRegistry(reg, registryPath)
}

func validateRegistry(required []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(required...); err != nil {
		return err
	}

	fmt.Printf("Registry validation passed. Found %d channels.\n", len(reg.Channels))
	return nil
}

func parsePattern(s string) ([]int64, error) {
	var pattern []int64
	for _, part := range splitList(s) {
		ms, err := strconv.ParseInt(part, 10, 64)
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("invalid vibration step %q", part)
		}
		pattern = append(pattern, ms)
	}
	return pattern, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  init     Write the built-in default and call channels
  add      Add a new channel to the registry
  update   Update an existing channel's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater init -path configs/channels.json
  registry-updater add -id promo_channel_id -name "Promotions" -importance default -lightColor green
  registry-updater update -id call_channel_id -field vibration -value 0,500,250,500
  registry-updater validate -require default_channel_id,call_channel_id

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
