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

// Package ai provides abstractions for the language model services used by
// qamatch.
//
// The only service qamatch needs is an Oracle: a chat model that reads a
// system instruction and a user message and answers in free text. The
// confirmation gate builds the messages and interprets the reply; this
// package only moves text to and from the model.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewOracle) return
// INTERFACE types to prevent accidental coupling to concrete implementations.
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockOracle) return CONCRETE types so
// tests can inject behavior and inspect calls.
//
//	oracle := mock.NewMockOracle()
//	oracle.CompleteFunc = func(ctx context.Context, msgs []ai.Message) (string, error) {
//	    return "NOT_SIMILAR", nil
//	}
//	count := oracle.CallCount()
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithOracleModel("gpt-4o-mini"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	reply, err := provider.Oracle().Complete(ctx, []ai.Message{
//	    {Role: ai.RoleSystem, Content: "You are terse."},
//	    {Role: ai.RoleUser, Content: "Say hi."},
//	})
package ai
