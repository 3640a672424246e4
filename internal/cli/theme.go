/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"context"

	"gestaovendas/internal/app"
	"gestaovendas/internal/version"

	"github.com/spf13/cobra"
)

func newThemeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "theme",
		Aliases: []string{"tema"},
		Short:   "Ler ou gravar o tema visual preferido",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Mostrar o tema salvo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				theme := s.Prefs.Load()
				if opts.printer.json() {
					return opts.printer.JSON(map[string]string{"theme": theme})
				}
				return opts.printer.Message("%s", theme)
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set <tema>",
		Short: "Salvar o tema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				if err := s.Prefs.Save(args[0]); err != nil {
					return WrapExitError("tema não salvo", err)
				}
				return opts.printer.Message("Tema salvo: %s", args[0])
			})
		},
	})
	return cmd
}

func newVersionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Mostrar a versão",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.printer.json() {
				return opts.printer.JSON(map[string]string{"version": version.Version, "commit": version.Commit})
			}
			return opts.printer.Message("gestaovendas %s", version.String())
		},
	}
}
