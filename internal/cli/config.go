/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"gestaovendas/internal/config"

	"github.com/spf13/cobra"
)

type configEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Env   string `json:"env,omitempty"`
}

func newConfigCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Aliases: []string{"configuracao"},
		Short:   "Ver ou alterar a configuração do usuário",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Mostrar o caminho do arquivo de configuração",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return WrapExitError("caminho da configuração indisponível", err)
			}
			if opts.printer.json() {
				return opts.printer.JSON(map[string]string{"path": path})
			}
			return opts.printer.Message("%s", path)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Mostrar a configuração em uso",
		Long:  "Mostra os valores em uso, incluindo flags e variáveis de ambiente. Valores vindos do ambiente indicam a variável.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := make([]configEntry, 0, len(config.Keys()))
			for _, key := range config.Keys() {
				v, err := config.Get(opts.cfg, key)
				if err != nil {
					return err
				}
				e := configEntry{Key: key, Value: v}
				if env, ok := config.EnvOverrideFor(key); ok {
					e.Env = env
				}
				entries = append(entries, e)
			}
			if opts.printer.json() {
				return opts.printer.JSON(entries)
			}
			tw := tabwriter.NewWriter(opts.printer.W, 0, 8, 2, ' ', 0)
			for _, e := range entries {
				v := orDash(e.Value)
				if e.Env != "" {
					v += " (" + e.Env + ")"
				}
				fmt.Fprintf(tw, "%s\t%s\n", e.Key, v)
			}
			return tw.Flush()
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <chave> <valor>",
		Short: "Gravar um valor no arquivo de configuração",
		Long:  "Grava o valor no arquivo de configuração. Variáveis de ambiente continuam tendo precedência.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			cfg, err := config.LoadFile()
			if err != nil {
				return WrapExitError("configuração ilegível", err)
			}
			if err := config.Set(&cfg, key, value); err != nil {
				if errors.Is(err, config.ErrUnknownKey) {
					return &ExitError{Code: ExitCommandError, Message: fmt.Sprintf("chave desconhecida %q", key), Err: err}
				}
				return &ExitError{Code: ExitCommandError, Message: "valor inválido", Err: err}
			}
			if err := config.Save(cfg); err != nil {
				return WrapExitError("configuração não salva", err)
			}
			saved, _ := config.Get(cfg, key)
			if env, ok := config.EnvOverrideFor(key); ok {
				return opts.printer.Message("Configuração salva: %s = %s (sobreposta por %s)", key, saved, env)
			}
			return opts.printer.Message("Configuração salva: %s = %s", key, saved)
		},
	})
	return cmd
}
