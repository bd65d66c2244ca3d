package mq

// EnsureQueue объявляет durable очередь name через канал ch.
//
// Повторное объявление той же очереди ничего не меняет. Если очередь
// уже существует с другими параметрами, брокер отвечает
// PRECONDITION_FAILED (см. IsQueueConflict) и закрывает канал;
// ошибка оборачивает ErrProvision.
func EnsureQueue(ch Channel, name string) error {
	if name == "" {
		return &OpError{Op: "declare", Kind: ErrProvision, Err: errEmptyQueueName}
	}

	_, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return &OpError{Op: "declare", Queue: name, Kind: ErrProvision, Err: err}
	}

	return nil
}
