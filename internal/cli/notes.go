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
	"io"
	"os"
	"strings"

	"gestaovendas/internal/app"
	"gestaovendas/internal/notebook"

	"github.com/spf13/cobra"
)

func newNotesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notes",
		Aliases: []string{"caderno"},
		Short:   "Ler e gravar os cadernos de encomendas e anotações",
	}
	cmd.AddCommand(newNotesShowCommand(opts))
	cmd.AddCommand(newNotesSetCommand(opts))
	cmd.AddCommand(newNotesAppendCommand(opts))
	return cmd
}

func kindArg(s string) (notebook.Kind, error) {
	k, err := notebook.ParseKind(s)
	if err != nil {
		return 0, &ExitError{Code: ExitCommandError, Message: err.Error()}
	}
	return k, nil
}

func newNotesShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <orders|notes>",
		Short: "Mostrar o conteúdo de um caderno",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				text, err := s.LoadNotebook(kind)
				if err != nil {
					return WrapExitError("caderno não lido", err)
				}
				if opts.printer.json() {
					return opts.printer.JSON(map[string]string{"kind": kind.String(), "text": text})
				}
				_, err = io.WriteString(cmd.OutOrStdout(), text)
				return err
			})
		},
	}
}

func newNotesSetCommand(opts *RootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "set <orders|notes> [texto]",
		Short: "Substituir o conteúdo de um caderno",
		Long:  "Substitui o caderno pelo texto informado, pelo conteúdo de --file ou, sem ambos, pela entrada padrão.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			text, err := notebookText(cmd, file, args[1:])
			if err != nil {
				return WrapExitError("texto não lido", err)
			}
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				doc, err := s.OpenDocument(kind)
				if err != nil {
					return WrapExitError("caderno não aberto", err)
				}
				doc.Set(text)
				if err := doc.Flush(); err != nil {
					return WrapExitError("caderno não salvo", err)
				}
				return opts.printer.Message("Caderno %s salvo.", kind)
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "read the text from a file")
	return cmd
}

func notebookText(cmd *cobra.Command, file string, args []string) (string, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), nil
	case file != "":
		b, err := os.ReadFile(file)
		return string(b), err
	default:
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
}

func newNotesAppendCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "append <orders|notes> <linha>",
		Short: "Acrescentar uma linha a um caderno",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			line := strings.Join(args[1:], " ")
			return opts.withServices(cmd, func(ctx context.Context, s *app.Services) error {
				if err := s.AppendNotebook(kind, line); err != nil {
					return WrapExitError("caderno não salvo", err)
				}
				return opts.printer.Message("Linha adicionada ao caderno %s.", kind)
			})
		},
	}
}
