// Package socket реализует сокет-клиент Screeps поверх SockJS-эмуляции
// (wss://screeps.com/socket/websocket).
//
// Клиент сам отвечает на heartbeat, авторизуется токеном из token.Storage
// при открытии соединения и, если токена нет или сервер ответил "auth failed",
// повторяет попытку через 15s. Свежий токен из "auth ok <token>" кладётся
// обратно в token.Storage.
// Сообщения приложения не интерпретируются: строки отдаются Handler'у как
// пришли, по одной, в порядке батча.
//
// Handler обязан уметь только OnMessage. Остальные колбэки необязательны:
//   - OnCommunication(sockjs.Result) — все разобранные кадры (по умолчанию
//     Dispatch: сообщения по одному в OnMessage);
//   - OnError(error) — ошибки разбора, ErrUnauthorized, ErrAuthFailed, ошибки сокета
//     (по умолчанию пишутся в лог);
//   - OnDisconnect() — соединение закрыто (по умолчанию ничего).
//
// Подписки — через Sender: Subscribe/Unsubscribe(Channel). Sender можно
// копировать и звать из любых горутин.
//
// Пример:
//
//	tokens := token.NewSlot()
//	_ = apiClient.Login(ctx, email, password) // положит токен в tokens
//
//	conn, err := socket.Connect(ctx, "wss://screeps.com/socket/websocket",
//	    func(s socket.Sender) socket.Handler {
//	        return socket.HandlerFunc(func(m sockjs.Message) error {
//	            if socket.AuthSucceeded(m) {
//	                return s.Subscribe(socket.UserConsole(userID))
//	            }
//	            fmt.Println(m)
//	            return nil
//	        })
//	    }, tokens)
//	if err != nil { log.Fatal(err) }
//	defer conn.Close()
package socket
