// cmd/tools/workflow-publisher/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"generation-workers/internal/common/config"
	"generation-workers/internal/common/database"
	"generation-workers/internal/common/logger"
	"generation-workers/internal/generation/workflows"
	"generation-workers/pkg/registry"
)

const defaultRegistryPath = "configs/workflow-registry.json"

func main() {
	publishCmd := flag.NewFlagSet("publish", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)

	publishPath := publishCmd.String("path", "", "Path to registry file (defaults to workflows.registry_path)")
	publishKey := publishCmd.String("key", "", "Publish only this workflow key")
	configPath := publishCmd.String("config", "", "Config file (defaults to configs/config.yaml)")

	validatePath := validateCmd.String("path", defaultRegistryPath, "Path to registry file")

	showKey := showCmd.String("key", "", "Workflow key to show")
	showConfig := showCmd.String("config", "", "Config file (defaults to configs/config.yaml)")

	addPath := addCmd.String("path", defaultRegistryPath, "Path to registry file")
	addKey := addCmd.String("key", "", "Workflow key (e.g., img2img-upscale)")
	addType := addCmd.String("type", "", "Workflow type (txt2img, img2img, vid2vid)")
	addName := addCmd.String("name", "", "Display name")
	addTemplate := addCmd.String("template", "", "Path to the template JSON file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "publish":
		publishCmd.Parse(os.Args[2:])
		err = publish(*configPath, *publishPath, *publishKey)
	case "validate":
		validateCmd.Parse(os.Args[2:])
		err = validate(*validatePath)
	case "show":
		showCmd.Parse(os.Args[2:])
		if *showKey == "" {
			fmt.Println("Error: key is required for show.")
			showCmd.Usage()
			os.Exit(1)
		}
		err = show(*showConfig, *showKey)
	case "add":
		addCmd.Parse(os.Args[2:])
		if *addKey == "" || *addType == "" || *addName == "" || *addTemplate == "" {
			fmt.Println("Error: key, type, name, and template are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		err = add(*addPath, *addKey, *addType, *addName, *addTemplate)
	case "help":
		fallthrough
	default:
		help()
		return
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func openStore(cfg *config.Config, log logger.Logger) (*workflows.Store, *database.RedisClient, error) {
	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	return workflows.NewStore(rdb, cfg.Workflows, log), rdb, nil
}

func publish(configPath, registryPath, onlyKey string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if registryPath == "" {
		registryPath = cfg.Workflows.RegistryPath
	}
	if registryPath == "" {
		registryPath = defaultRegistryPath
	}

	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return err
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	store, rdb, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	published := 0
	for i := range reg.Workflows {
		def := &reg.Workflows[i]
		if onlyKey != "" && def.Key != onlyKey {
			continue
		}
		if err := store.Set(ctx, def.Key, def); err != nil {
			return fmt.Errorf("publish %s: %w", def.Key, err)
		}
		published++
	}
	if onlyKey != "" && published == 0 {
		return fmt.Errorf("workflow %s not found in %s", onlyKey, registryPath)
	}

	fmt.Printf("Published %d workflows from %s.\n", published, registryPath)
	return nil
}

func validate(registryPath string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Printf("Registry validation passed. Found %d workflows.\n", len(reg.Workflows))
	return nil
}

func show(configPath, key string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	store, rdb, err := openStore(cfg, logger.NewNoOpLogger())
	if err != nil {
		return err
	}
	defer rdb.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	def, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func add(registryPath, key, kind, name, templatePath string) error {
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.WorkflowRegistry{Version: "1.0.0"}
	}
	if _, exists := reg.Find(key); exists {
		return fmt.Errorf("workflow with key %s already exists", key)
	}

	def := workflows.Definition{
		Key:      key,
		Type:     workflows.DefinitionType(kind),
		Name:     name,
		Template: string(template),
	}
	if err := def.Validate(); err != nil {
		return err
	}
	reg.Workflows = append(reg.Workflows, def)

	if err := registry.SaveRegistry(reg, registryPath); err != nil {
		return err
	}
	fmt.Printf("Added workflow: %s\n", key)
	return nil
}

func help() {
	fmt.Print(`
Usage: workflow-publisher <command> [flags]

Commands:
  publish   Validate the registry file and write every workflow to the template store
  validate  Validate the registry file
  show      Print a workflow as stored in the template store
  add       Add a workflow template to the registry file
  help      Show this help message

Examples:
  workflow-publisher add -key img2img-upscale -type img2img -name "Upscale" -template templates/upscale.json
  workflow-publisher validate -path configs/workflow-registry.json
  workflow-publisher publish -key img2img-upscale
  workflow-publisher show -key img2img-upscale

Use 'workflow-publisher <command> -h' for more information about a command.
` + "\n")
}
