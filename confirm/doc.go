// Package confirm delegates the final similarity judgment to a generative
// oracle.
//
// The Gate shows the oracle a bounded list of retrieval candidates and asks
// for exactly one of two literal replies:
//
//	SIMILAR|<canonical answer>
//	NOT_SIMILAR
//
// ParseVerdict maps any reply onto a Decision. Malformed replies are never an
// error; they are Rejected. Only a failed oracle call surfaces an error
// (ErrOracleFailed), and the Decision returned with it is still Rejected so
// callers can fall back to the top lexical candidate if they choose.
package confirm
