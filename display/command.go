package display

import (
	"os"

	"github.com/spf13/cobra"
)

// JSONEnvVar forces JSON output when set to a true value
const JSONEnvVar = "GIT1FILE_JSON"

// ShouldOutputJSON determines if a command should output JSON based on the
// --json flag, falling back to GIT1FILE_JSON
func ShouldOutputJSON(cmd *cobra.Command) bool {
	// No command context: environment only
	if cmd == nil {
		return envJSON()
	}

	// Check if --json flag was explicitly set
	if cmd.Flags().Changed("json") {
		jsonFlag, _ := cmd.Flags().GetBool("json")
		return jsonFlag
	}

	// Check global --json flag
	if globalFlag, _ := cmd.Root().PersistentFlags().GetBool("json"); globalFlag {
		return true
	}

	return envJSON()
}

func envJSON() bool {
	switch os.Getenv(JSONEnvVar) {
	case "1", "true", "TRUE", "yes":
		return true
	}
	return false
}

// OutputJSON marshals and prints JSON using display.MarshalJSON
func OutputJSON(v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(append(data, '\n'))
	return err
}
