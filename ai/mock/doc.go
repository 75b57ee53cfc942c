// Package mock provides test double implementations of AI service interfaces.
//
// The mocks let tests run without an external model and make oracle replies
// deterministic.
//
// # Usage in Tests
//
//	// Fixed reply
//	oracle := mock.NewMockOracle().WithReply("SIMILAR|42")
//
//	// Custom behavior injection
//	oracle.CompleteFunc = func(ctx context.Context, msgs []ai.Message) (string, error) {
//	    return "", errors.New("connection refused")
//	}
//
//	// Check calls
//	count := oracle.CallCount()
//	last := oracle.LastMessages()
//
// # Default Behavior
//
//   - MockOracle: replies "NOT_SIMILAR"
//   - MockProvider: wraps a MockOracle
package mock
