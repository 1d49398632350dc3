/*
 * Copyright 2022 The Gremlins Authors
 *
 *    Licensed under the Apache License, Version 2.0 (the "License");
 *    you may not use this file except in compliance with the License.
 *    You may obtain a copy of the License at
 *
 *        http://www.apache.org/licenses/LICENSE-2.0
 *
 *    Unless required by applicable law or agreed to in writing, software
 *    distributed under the License is distributed on an "AS IS" BASIS,
 *    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *    See the License for the specific language governing permissions and
 *    limitations under the License.
 */

/*
Polymute is a mutation testing tool for polyglot projects. It targets a
single Python, JavaScript, TypeScript or Rust source file, proposes small
syntactic perturbations (mutants), and runs your test command against each
one to see whether it's caught.

Usage

To mutate a single file and run its tests:

	$ polymute run path/to/target.py -t path/to/test_target.py --test-cmd "pytest path/to/test_target.py"

The test command has no default: it is not derived from the language or
from -t, so every run needs --test-cmd (or run.test-cmd in the
configuration).

To restrict mutation to one function:

	$ polymute run target.py -f my_function --test-cmd pytest

To restrict mutation to the lines touched by a patch:

	$ polymute run target.py --diff change.patch --test-cmd pytest

Polymute reports each mutant as one of:
  - KILLED: the test command failed against the mutant.
  - SURVIVED: the test command passed against the mutant, a coverage gap.
  - TIMEOUT: the test command exceeded its time budget.
  - UNVIABLE: the mutant could not be evaluated at all.

Configuration

Polymute uses Viper (https://github.com/spf13/viper) for configuration.
Options can be passed as command flags, environment variables, or a
configuration file, in that order of precedence. Environment variables use
the syntax:

	POLYMUTE_<SECTION>_<FLAG NAME>

with every dash in the option name replaced by an underscore, for example:

	$ POLYMUTE_RUN_TIMEOUT_MULT=5 polymute run target.py -t test_target.py --test-cmd pytest

The configuration file is named .polymute.yaml and is looked up, in order,
in /etc/polymute (not on Windows), $XDG_CONFIG_HOME/polymute (default
$HOME/.config/polymute), $HOME/.polymute, and the current directory; the
first one found is used. --config names a file directly instead.
*/
package polymute
