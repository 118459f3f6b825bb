// SPDX-License-Identifier: Apache-2.0
/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"bufio"
	"bytes"
	"encoding/json"
)

// MarshalAnyToFormattedJsonString renders any JSON-serialisable value
// (a graph's edges, a "graph check" report) as an indented string for
// the CLI's default, non-pretty-printed output path.
func MarshalAnyToFormattedJsonString(any interface{}) (string, error) {
	byteMapOut, err := json.MarshalIndent(any, "", "  ")
	return string(byteMapOut), err
}

// EncodeAnyToIndentedJSON renders any value as indented JSON with HTML
// escaping disabled, so SPDX ids and scope literals containing '<', '>'
// or '&' (e.g. an "OR-later" expression or a blacklist entry) come out
// readable in a saved report instead of escaped to backslash-u003c style
// runs.
func EncodeAnyToIndentedJSON(any interface{}) (outputBuffer bytes.Buffer, err error) {
	bufferedWriter := bufio.NewWriter(&outputBuffer)
	encoder := json.NewEncoder(bufferedWriter)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	err = encoder.Encode(any)
	bufferedWriter.Flush()
	return
}
