// Package provd — HTTP-клиент REST API сервера provd.
//
// # Обзор
//
// Клиент не знает ничего о CLI: он только отправляет запросы, разбирает
// ответы и ошибки. Ресурсы provd — произвольные JSON-документы, поэтому
// конфиги и устройства представлены как Document.
//
// # Ключевые компоненты
//
// ## Client
//
// Общий транспорт: базовый URL, токен X-Auth-Token, X-Request-ID на каждый
// запрос, таймаут, TLS и Observer для метрик.
//
//	client := provd.NewClient(provd.Options{BaseURL: "http://localhost:8666/provd"})
//	devices, err := client.Devices().List(ctx, provd.Query{})
//
// ## Managers
//
//   - ConfigManager — cfg_mgr: конфиги и autocreate
//   - DeviceManager — dev_mgr: устройства, reconfigure, synchronize
//   - PluginManager — pg_mgr: плагины и их пакеты
//   - ParamManager  — configure: параметры сервера
//
// ## Operation
//
// Асинхронные запросы отвечают 201 Created с заголовком Location.
// Operation реализует oip.Handle: Update читает статус по Location,
// Delete освобождает операцию на сервере.
package provd
