// Package bus abstracts the message-bus client library behind the
// minimal Consumer/Producer interfaces the Pipeline depends on. The
// kafka-go-backed implementation is grounded on pkg/mq/kafka.go from
// the financial-trading example repo.
package bus
