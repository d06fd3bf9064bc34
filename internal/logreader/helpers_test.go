package logreader

import (
	"fmt"
	"strings"
)

type testEvent struct {
	ts        int64
	level     string
	logger    string
	thread    string
	class     string
	method    string
	message   string
	exception string
	props     [][2]string
}

func (e testEvent) xml() string {
	var b strings.Builder
	fmt.Fprintf(&b, `<log4j:event logger="%s" timestamp="%d" level="%s" thread="%s">`, e.logger, e.ts, e.level, e.thread)
	b.WriteString("\n")
	fmt.Fprintf(&b, "<log4j:message><![CDATA[%s]]></log4j:message>\n", e.message)
	if e.exception != "" {
		fmt.Fprintf(&b, "<log4j:throwable><![CDATA[%s]]></log4j:throwable>\n", e.exception)
	}
	fmt.Fprintf(&b, `<log4j:locationInfo class="%s" method="%s" file="X.java" line="1"/>`, e.class, e.method)
	b.WriteString("\n")
	if len(e.props) > 0 {
		b.WriteString("<log4j:properties>\n")
		for _, kv := range e.props {
			fmt.Fprintf(&b, `<log4j:data name="%s" value="%s"/>`, kv[0], kv[1])
			b.WriteString("\n")
		}
		b.WriteString("</log4j:properties>\n")
	}
	b.WriteString("</log4j:event>\n")
	return b.String()
}

const (
	logHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n" +
		`<log4j:eventSet version="1.2" xmlns:log4j="http://jakarta.apache.org/log4j/">` + "\n"
	logFooter = "</log4j:eventSet>\n"
)

func logDocument(events ...testEvent) string {
	var b strings.Builder
	b.WriteString(logHeader)
	for _, e := range events {
		b.WriteString(e.xml())
	}
	b.WriteString(logFooter)
	return b.String()
}

func generatedEvents(n int) []testEvent {
	levels := []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL", "TRACE"}
	events := make([]testEvent, n)
	for i := range events {
		events[i] = testEvent{
			ts:      1700000000000 + int64(i)*1000,
			level:   levels[i%len(levels)],
			logger:  fmt.Sprintf("com.example.Logger%d", i%4),
			thread:  fmt.Sprintf("worker-%d", i%3),
			class:   fmt.Sprintf("com.example.service.Service%d", i%5),
			method:  fmt.Sprintf("void handle%d(java.lang.String)", i%7),
			message: fmt.Sprintf("event number %d with some padding text to make records longer", i),
			props:   [][2]string{{"log4jmachinename", "host-a"}, {"seq", fmt.Sprint(i)}},
		}
		if i%9 == 0 {
			events[i].exception = fmt.Sprintf("java.lang.IllegalStateException: boom %d\n\tat com.example.Foo.bar(Foo.java:1)", i)
		}
	}
	return events
}
