package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"codepomodoro/internal/core/model"
)

// settingKeys maps the settings file keys onto config fields.
var settingKeys = map[string]func(config *model.Config, value string) error{
	"workDuration":            intSetting(func(config *model.Config, value int) { config.WorkDuration = value }),
	"shortBreakDuration":      intSetting(func(config *model.Config, value int) { config.ShortBreakDuration = value }),
	"longBreakDuration":       intSetting(func(config *model.Config, value int) { config.LongBreakDuration = value }),
	"sessionsBeforeLongBreak": intSetting(func(config *model.Config, value int) { config.SessionsBeforeLongBreak = value }),
	"statusBarPriority":       intSetting(func(config *model.Config, value int) { config.StatusBarPriority = value }),
	"autoStartBreaks":         boolSetting(func(config *model.Config, value bool) { config.AutoStartBreaks = value }),
	"autoStartWork":           boolSetting(func(config *model.Config, value bool) { config.AutoStartWork = value }),
	"showInStatusBar":         boolSetting(func(config *model.Config, value bool) { config.ShowInStatusBar = value }),
}

func intSetting(set func(*model.Config, int)) func(*model.Config, string) error {
	return func(config *model.Config, raw string) error {
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%q is not a whole number", raw)
		}
		set(config, value)
		return nil
	}
}

func boolSetting(set func(*model.Config, bool)) func(*model.Config, string) error {
	return func(config *model.Config, raw string) error {
		value, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%q is not true or false", raw)
		}
		set(config, value)
		return nil
	}
}

func settingNames() []string {
	names := make([]string, 0, len(settingKeys))
	for name := range settingKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// applySetting parses value for key into config.
func applySetting(config *model.Config, key, value string) error {
	set, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("unknown setting %q (known: %s)", key, strings.Join(settingNames(), ", "))
	}
	if err := set(config, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func newSettingsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect or change timer settings",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the settings file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := opts.settingsPath()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := opts.openSettings()
			if err != nil {
				return err
			}
			return writeConfig(cmd.OutOrStdout(), settings.Config())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:       "set <key> <value>",
		Short:     "Change one setting. A running timer picks it up from the file",
		Args:      cobra.ExactArgs(2),
		ValidArgs: settingNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := opts.openSettings()
			if err != nil {
				return err
			}

			changed := settings.Config()
			if err := applySetting(&changed, args[0], args[1]); err != nil {
				return err
			}
			config, err := settings.Update(func(config *model.Config) { *config = changed })
			if err != nil {
				return err
			}
			opts.logger.Debug("settings saved", "path", settings.Path(), "key", args[0])
			return writeConfig(cmd.OutOrStdout(), config)
		},
	})
	return cmd
}

func writeConfig(out io.Writer, config model.Config) error {
	rows := []struct {
		key   string
		value any
	}{
		{"workDuration", config.WorkDuration},
		{"shortBreakDuration", config.ShortBreakDuration},
		{"longBreakDuration", config.LongBreakDuration},
		{"sessionsBeforeLongBreak", config.SessionsBeforeLongBreak},
		{"autoStartBreaks", config.AutoStartBreaks},
		{"autoStartWork", config.AutoStartWork},
		{"showInStatusBar", config.ShowInStatusBar},
		{"statusBarPriority", config.StatusBarPriority},
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(out, "%-24s %v\n", row.key, row.value); err != nil {
			return err
		}
	}
	return nil
}
