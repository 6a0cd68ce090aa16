// pkg/cli/cli.go
//
// Flag and environment plumbing shared by the hestia commands. Flags are
// declared on cobra, bound into a viper instance, and viper also reads
// HESTIA_* environment variables so every option can come from either place.
package cli

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for every environment variable hestia reads.
const EnvPrefix = "HESTIA"

// AddStringFlag adds a persistent string flag.
func AddStringFlag(cmd *cobra.Command, name, shorthand, def, help string) {
	cmd.PersistentFlags().StringP(name, shorthand, def, help)
}

// AddBoolFlag adds a persistent boolean flag.
func AddBoolFlag(cmd *cobra.Command, name, shorthand string, def bool, help string) {
	cmd.PersistentFlags().BoolP(name, shorthand, def, help)
}

// BindFlagsToViper binds all flags visible on a command to a Viper instance.
func BindFlagsToViper(cmd *cobra.Command, v *viper.Viper) error {
	var result error
	bind := func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			result = multierror.Append(result, err)
		}
	}
	cmd.Flags().VisitAll(bind)
	cmd.InheritedFlags().VisitAll(bind)
	return result
}

// SetViperEnvPrefix lets Viper read env with prefix, mapping dashes to underscores.
func SetViperEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// BindEnvAliases attaches extra environment variable names to a key.
func BindEnvAliases(v *viper.Viper, key string, envs ...string) error {
	input := append([]string{key}, envs...)
	return v.BindEnv(input...)
}

// LoadEnvFile loads a dotenv file into the process environment. Values already
// present in the environment win.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	return godotenv.Load(path)
}

// NewViper returns a viper instance bound to cmd's flags and HESTIA_* env.
func NewViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	SetViperEnvPrefix(v, EnvPrefix)
	if err := BindFlagsToViper(cmd, v); err != nil {
		return nil, err
	}
	return v, nil
}
