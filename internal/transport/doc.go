// Package transport — websocket-транспорт (gorilla/websocket) с событийным
// циклом в одной горутине.
//
// Чтение сокета, одноразовые таймеры (Timeout) и ошибки превращаются в события
// и отдаются Handler'у строго последовательно, поэтому состояние внутри
// обработчика не требует блокировок. Запись (Send) можно звать из любых
// горутин: она сериализована мьютексом и ограничена write-deadline.
//
// Поверх транспорта нет переподключения: после закрытия соединение мертво,
// Handler получает OnClose ровно один раз.
//
// Пример:
//
//	conn, err := transport.Dial(ctx, "wss://screeps.com/socket/websocket",
//	    func(out transport.Out) transport.Handler { return newMyHandler(out) },
//	    transport.WithPingInterval(25*time.Second))
//	if err != nil { log.Fatal(err) }
//	defer conn.Close()
//	<-conn.Done()
package transport
