// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package history records the searches a user has run.
//
// A search is identified by its (query, path) pair. Running the same pair
// again moves it to the front instead of adding a duplicate, and only the
// newest entries up to the configured limit are kept.
//
// Basic usage:
//
//	svc, err := history.New(repo)
//	if err != nil {
//	    return err
//	}
//	if _, err := svc.Add(ctx, "needle", "./src", core.SearchOptions{}); err != nil {
//	    return err
//	}
//	recent, err := svc.List(ctx)
package history
