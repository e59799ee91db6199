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

// Package process owns the external search executable's lifecycle.
//
// A Handle wraps one spawned child process and the read end of its standard
// output. The output can be taken exactly once, by whoever consumes it; the
// Handle itself stays reachable so that any holder can Terminate it.
//
// Termination is advisory: Terminate sends a kill signal (to the whole process
// group on Unix) and returns without waiting for the process to exit. A
// background reaper collects the exit status so no zombies are left behind.
// On Windows the child is started without a console window.
package process
