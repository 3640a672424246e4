/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Backup writes a consistent copy of the live database to <dir>/backups/vendas_gestao.<stamp>.db
// using VACUUM INTO and returns its path.
func (s *Store) Backup(ctx context.Context) (string, error) {
	db, err := s.conn()
	if err != nil {
		return "", err
	}
	bdir := filepath.Join(s.dir, BackupDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}
	name := fmt.Sprintf("%s.%s.db", strings.TrimSuffix(FileName, filepath.Ext(FileName)), s.now().Format("20060102-150405"))
	dst := filepath.Join(bdir, name)
	if _, err := os.Stat(dst); err == nil {
		return "", fmt.Errorf("backup %s already exists", name)
	}
	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, dst); err != nil {
		return "", fmt.Errorf("vacuum into %s: %w", name, err)
	}
	s.log.Info("database backup written", slog.String("path", dst))
	return dst, nil
}
