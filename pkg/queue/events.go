package queue

import "github.com/ThreeDotsLabs/watermill/message"

// Typed publish/parse helpers per topic.

// PublishVersionStored publishes sv.version.stored.
func PublishVersionStored(pub message.Publisher, payload VersionStoredPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicVersionStored, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicVersionStored, msg)
}

// ParseVersionStored decodes a sv.version.stored envelope.
func ParseVersionStored(msg *message.Message) (Message[VersionStoredPayload], error) {
	return ParseWatermillMessage[VersionStoredPayload](msg)
}

// PublishVersionDuplicate publishes sv.version.duplicate.
func PublishVersionDuplicate(pub message.Publisher, payload VersionDuplicatePayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicVersionDuplicate, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicVersionDuplicate, msg)
}

// PublishVersionFilled publishes sv.version.filled.
func PublishVersionFilled(pub message.Publisher, payload VersionFilledPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicVersionFilled, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicVersionFilled, msg)
}

// PublishVersionLifecycle publishes a disabled/restored/purged transition on
// the given topic.
func PublishVersionLifecycle(pub message.Publisher, topic string, payload VersionLifecyclePayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(topic, msg)
}

// ParseVersionLifecycle decodes a lifecycle envelope.
func ParseVersionLifecycle(msg *message.Message) (Message[VersionLifecyclePayload], error) {
	return ParseWatermillMessage[VersionLifecyclePayload](msg)
}

// PublishProductCreated publishes sv.product.created.
func PublishProductCreated(pub message.Publisher, payload ProductCreatedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicProductCreated, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicProductCreated, msg)
}

// PublishCategoryLinked publishes sv.category.linked.
func PublishCategoryLinked(pub message.Publisher, payload CategoryLinkedPayload, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicCategoryLinked, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicCategoryLinked, msg)
}
