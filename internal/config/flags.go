package config

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag ties a CLI flag to a config key.
type Flag struct {
	Name        string
	Shorthand   string
	ViperKey    string
	Description string
}

// Flag registry keys.
const (
	FlagProvider = "provider"
	FlagModel    = "model"
	FlagMemory   = "memory"
	FlagDebug    = "debug"
	FlagTTS      = "tts"
	FlagJSONLogs = "json-logs"
)

// Flags is the registry of persistent flags.
var Flags = map[string]Flag{
	FlagProvider: {Name: "provider", Shorthand: "p", ViperKey: "provider", Description: "Reasoning service: anthropic or ollama"},
	FlagModel:    {Name: "model", Shorthand: "m", ViperKey: "model", Description: "Model id (defaults per provider)"},
	FlagMemory:   {Name: "memory", ViperKey: "memory.path", Description: "Path of the memory file"},
	FlagDebug:    {Name: "debug", ViperKey: "log.debug", Description: "Enable debug logging"},
	FlagTTS:      {Name: "tts", ViperKey: "speech.tts", Description: "Speak replies aloud"},
	FlagJSONLogs: {Name: "json-logs", ViperKey: "log.json", Description: "Write logs as JSON"},
}

// AddFlags registers the persistent flags on cmd. Defaults shown in help
// come from NewDefaultConfig.
func AddFlags(cmd *cobra.Command) {
	d := NewDefaultConfig()
	pf := cmd.PersistentFlags()
	for _, key := range []string{FlagProvider, FlagModel, FlagMemory} {
		f := Flags[key]
		def := ""
		switch key {
		case FlagProvider:
			def = d.Provider
		case FlagMemory:
			def = d.Memory.Path
		}
		pf.StringP(f.Name, f.Shorthand, def, f.Description)
	}
	for _, key := range []string{FlagDebug, FlagTTS, FlagJSONLogs} {
		f := Flags[key]
		pf.BoolP(f.Name, f.Shorthand, false, f.Description)
	}
}

// BindFlags binds the registered flags of cmd to v. Only flags the user
// actually set override lower layers.
func BindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for _, f := range Flags {
		flag := cmd.Flags().Lookup(f.Name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(f.Name)
		}
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(f.ViperKey, flag); err != nil {
			return fmt.Errorf("binding flag %s: %w", f.Name, err)
		}
	}
	return nil
}
