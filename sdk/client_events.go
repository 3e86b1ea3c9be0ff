package sdk

import "time"

func (c *Client) emitIntent(event IntentEvent) {
	select {
	case c.intents <- event:
	default:
		c.logger.Warn("intent channel full, intent dropped", "intent", event.Intent)
	}
}

func (c *Client) emitStatus(message string) {
	select {
	case c.statuses <- StatusEvent{When: time.Now(), Message: message}:
	default:
	}
}

func (c *Client) emitErr(err error) {
	if err == nil {
		return
	}
	select {
	case c.errs <- err:
	default:
	}
}
