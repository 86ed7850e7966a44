// Package admin — объектный фасад над REST API provd.
//
// # Обзор
//
// Session собирается один раз при старте команды и передаётся явно во все
// обработчики и вспомогательные функции. Глобального состояния нет.
//
// Фасад добавляет к сырому клиенту то, что нужно администратору:
//   - раскрытие точечных ключей при добавлении и изменении конфигов
//   - изменение документа только если он действительно поменялся
//   - поиск по пакетам плагинов
//   - ожидание длительных операций с прогрессом (см. internal/oip)
//   - журнал аудита для каждого изменяющего вызова
//
// # Ключевые компоненты
//
//   - Session, SessionConfig, Options
//   - Configs / Config — конфиги провижининга
//   - Devices / Device / DeviceGroup — устройства
//   - Plugins / Plugin — плагины и их пакеты
//   - Parameters — параметры сервера
//
// # Длительные операции
//
// Все операции (синхронизация, установка, обновление индекса) проходят
// через один путь ожидания. При Options.OpAsync handle возвращается
// вызывающему без ожидания и без освобождения. Иначе операция
// отслеживается до конца и освобождается на сервере при любом исходе.
package admin
