/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage is the sales ledger's storage engine.
// It owns the SQLite file <dataDir>/vendas_gestao.db (pure-Go modernc driver, WAL, one connection):
// schema creation and migrations, integrity checks with timestamped backups of damaged files,
// CRUD and search over sales, dashboard aggregates and online backups via VACUUM INTO.
// Every mutation commits before it returns; nothing is cached in memory.
package storage
