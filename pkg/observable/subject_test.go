package observable

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribersInOrder(t *testing.T) {
	var subject Subject[int]
	var got []string

	subject.Subscribe(func(v int) { got = append(got, "a") })
	subject.Subscribe(func(v int) { got = append(got, "b") })
	subject.Publish(1)

	require.Equal(t, []string{"a", "b"}, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	var subject Subject[string]
	calls := 0
	unsubscribe := subject.Subscribe(func(string) { calls++ })

	subject.Publish("first")
	unsubscribe()
	unsubscribe()
	subject.Publish("second")

	require.Equal(t, 1, calls)
	require.Zero(t, subject.Len())
}

func TestSubscriberMayUnsubscribeDuringPublish(t *testing.T) {
	var subject Subject[int]
	var unsubscribe func()
	calls := 0
	unsubscribe = subject.Subscribe(func(int) {
		calls++
		unsubscribe()
	})

	subject.Publish(1)
	subject.Publish(2)

	require.Equal(t, 1, calls)
}

func TestNilSubscriberIsIgnored(t *testing.T) {
	var subject Subject[int]
	subject.Subscribe(nil)()
	require.Zero(t, subject.Len())
	subject.Publish(1)
}
