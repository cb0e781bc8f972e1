package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <sobject> <id>",
	Short: "Fetch a record",
	Args:  cobra.ExactArgs(2),
	RunE:  withSession(runGet),
}

var queryCmd = &cobra.Command{
	Use:   "query <soql>",
	Short: "Run a SOQL query and print every record",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(runQuery),
}

var createCmd = &cobra.Command{
	Use:   "create <sobject>",
	Short: "Create a record and print its id",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(runCreate),
}

var updateCmd = &cobra.Command{
	Use:   "update <sobject> <id>",
	Short: "Update fields of a record",
	Args:  cobra.ExactArgs(2),
	RunE:  withSession(runUpdate),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <sobject> <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE:  withSession(runDelete),
}

func init() {
	getCmd.Flags().StringSlice("fields", nil, "comma-separated list of fields to return")

	for _, cmd := range []*cobra.Command{createCmd, updateCmd} {
		cmd.Flags().String("data", "", `record fields as a JSON object, or "-" to read stdin`)
		_ = cmd.MarkFlagRequired("data")
	}

	rootCmd.AddCommand(getCmd, queryCmd, createCmd, updateCmd, deleteCmd)
}

func readData(cmd *cobra.Command) (map[string]interface{}, error) {
	raw, _ := cmd.Flags().GetString("data")

	var r io.Reader = strings.NewReader(raw)
	if raw == "-" {
		r = cmd.InOrStdin()
	}

	var data map[string]interface{}
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("--data must be a JSON object: %w", err)
	}
	return data, nil
}

func runGet(cmd *cobra.Command, args []string, a *app) error {
	fields, _ := cmd.Flags().GetStringSlice("fields")

	record, err := a.client.GetRecord(cmd.Context(), args[0], args[1], fields...)
	if err != nil {
		return err
	}
	return printJSON(cmd, record)
}

func runQuery(cmd *cobra.Command, args []string, a *app) error {
	records, err := a.client.Search(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd, records)
}

func runCreate(cmd *cobra.Command, args []string, a *app) error {
	data, err := readData(cmd)
	if err != nil {
		return err
	}

	id, err := a.client.CreateRecord(cmd.Context(), args[0], data)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), id)
	return nil
}

func runUpdate(cmd *cobra.Command, args []string, a *app) error {
	data, err := readData(cmd)
	if err != nil {
		return err
	}

	if err := a.client.UpdateRecord(cmd.Context(), args[0], args[1], data); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "updated %s %s\n", args[0], args[1])
	return nil
}

func runDelete(cmd *cobra.Command, args []string, a *app) error {
	if err := a.client.DeleteRecord(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", args[0], args[1])
	return nil
}
