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


package ai

import "context"

// Role tags who a message comes from.
type Role string

const (
	// RoleSystem carries the instruction that frames the conversation.
	RoleSystem Role = "system"

	// RoleUser carries the request itself.
	RoleUser Role = "user"
)

// Message is one role-tagged piece of a chat request.
type Message struct {
	Role    Role
	Content string
}

// Oracle answers a chat request with free text.
// Implementations must be thread-safe for concurrent use.
type Oracle interface {
	// Complete sends messages to the model and returns its reply.
	// An empty reply is not an error. Transport and service failures are.
	Complete(ctx context.Context, messages []Message) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Oracle returns the chat completion service.
	// The returned Oracle is safe for concurrent use.
	Oracle() Oracle

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
