/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "gestaovendas", cmd.Use)
	assert.Contains(t, cmd.Long, "SQLite")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"sales", "add"}, {"sales", "list"}, {"sales", "search"}, {"sales", "edit"},
		{"sales", "delete"}, {"sales", "summary"},
		{"export"}, {"import"}, {"backup"}, {"restore"}, {"db", "backup"}, {"db", "path"},
		{"notes", "show"}, {"notes", "set"}, {"notes", "append"},
		{"orders", "total"}, {"orders", "add"},
		{"pricing"}, {"theme", "get"}, {"theme", "set"},
		{"config", "path"}, {"config", "show"}, {"config", "set"}, {"version"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestAliases(t *testing.T) {
	cmd := NewRootCommand()
	for alias, name := range map[string]string{"vendas": "sales", "encomendas": "orders", "caderno": "notes", "tema": "theme", "preco": "pricing"} {
		sub, _, err := cmd.Find([]string{alias})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	outputFlag := cmd.PersistentFlags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
	assert.Equal(t, "text", outputFlag.DefValue)

	for _, name := range []string{"data-dir", "fallback-dir"} {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, "", f.DefValue)
	}
}

func TestSalesEditFlags(t *testing.T) {
	cmd := NewRootCommand()
	editCmd, _, err := cmd.Find([]string{"sales", "edit"})
	require.NoError(t, err)

	for _, name := range []string{"customer", "product", "price", "payment", "seller"} {
		assert.NotNil(t, editCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "c", editCmd.Flags().Lookup("customer").Shorthand)
}

func TestExportCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	exportCmd, _, err := cmd.Find([]string{"export"})
	require.NoError(t, err)

	formatFlag := exportCmd.Flags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "f", formatFlag.Shorthand)
	assert.Equal(t, "", formatFlag.DefValue)

	ordersFlag := exportCmd.Flags().Lookup("with-orders")
	require.NotNil(t, ordersFlag)
	assert.Equal(t, "true", ordersFlag.DefValue)
}

func TestSummaryTopFlag(t *testing.T) {
	cmd := NewRootCommand()
	summaryCmd, _, err := cmd.Find([]string{"sales", "summary"})
	require.NoError(t, err)

	topFlag := summaryCmd.Flags().Lookup("top")
	require.NotNil(t, topFlag)
	assert.Equal(t, "5", topFlag.DefValue)
}

func TestIsValidOutput(t *testing.T) {
	assert.True(t, isValidOutput("text"))
	assert.True(t, isValidOutput("json"))
	assert.False(t, isValidOutput("yaml"))
	assert.False(t, isValidOutput(""))
}
