package cmd

import (
	"encoding/json"
	"fmt"
	"os"
)

// OutputFormat is the envelope of every --json result
type OutputFormat struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// outputResult prints data in the appropriate format (human-readable or JSON)
func outputResult(data interface{}, message string, isError bool) {
	_, _, _, useJSON := GetGlobalFlags()

	if useJSON {
		result := OutputFormat{
			Success: !isError,
			Data:    data,
		}
		if message != "" {
			if isError {
				result.Error = message
			} else {
				result.Message = message
			}
		}

		jsonData, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Printf(`{"success":false,"error":"Failed to marshal JSON: %v"}`+"\n", err)
			return
		}
		fmt.Fprintln(os.Stdout, string(jsonData))
		return
	}

	// Human-readable format
	if message != "" {
		if isError {
			printer.Error("%s", message)
		} else {
			printer.Success("%s", message)
		}
	}
}

// outputSuccess prints successful results
func outputSuccess(data interface{}, message string) {
	outputResult(data, message, false)
}

// outputError prints error results
func outputError(message string) {
	outputResult(nil, message, true)
}
